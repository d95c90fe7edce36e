package mocks

//go:generate mockery -name GH -dir .. -output .
