package mocks

//go:generate mockery -name API -dir .. -output .
