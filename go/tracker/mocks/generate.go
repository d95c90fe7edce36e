package mocks

//go:generate mockery -name DB -dir .. -output .
