package codec

import "math"

// ToFahrenheit converts Celsius to whole degrees Fahrenheit, rounding to the
// nearest integer.
func ToFahrenheit(celsius float64) int {
	return int(math.Round(1.8*celsius + 32))
}

// ToCelsius converts Fahrenheit to Celsius without rounding.
//
// ToFahrenheit(ToCelsius(f)) is not guaranteed to return f for non-integer
// inputs: the Fahrenheit direction rounds, this one does not.
func ToCelsius(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5.0 / 9.0
}
