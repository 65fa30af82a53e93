package models

import (
	"encoding/json"
	"fmt"

	"anova_oven/internal/codec"
)

// Temperature is a reading carried in both scales. Only the Celsius value is
// stored; Fahrenheit is always derived from it so the two can never disagree.
type Temperature struct {
	celsius float64
}

// Celsius builds a Temperature from a Celsius reading.
func Celsius(c float64) Temperature {
	return Temperature{celsius: c}
}

// Fahrenheit builds a Temperature from a Fahrenheit reading.
func Fahrenheit(f float64) Temperature {
	return Temperature{celsius: codec.ToCelsius(f)}
}

// NewTemperature returns a pointer to a Celsius reading. Convenient for optional fields.
func NewTemperature(c float64) *Temperature {
	t := Celsius(c)
	return &t
}

func (t Temperature) Celsius() float64 { return t.celsius }

func (t Temperature) Fahrenheit() int { return codec.ToFahrenheit(t.celsius) }

// Equal compares two optional readings; two absent readings are equal.
func (t *Temperature) Equal(o *Temperature) bool {
	if t == nil || o == nil {
		return t == nil && o == nil
	}
	return t.celsius == o.celsius
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.1f°C/%d°F", t.celsius, t.Fahrenheit())
}

type temperatureJSON struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit int     `json:"fahrenheit"`
}

func (t Temperature) MarshalJSON() ([]byte, error) {
	return json.Marshal(temperatureJSON{Celsius: t.celsius, Fahrenheit: t.Fahrenheit()})
}

// UnmarshalJSON reads the celsius field; fahrenheit is ignored and re-derived.
func (t *Temperature) UnmarshalJSON(b []byte) error {
	var raw struct {
		Celsius *float64 `json:"celsius"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Celsius == nil {
		return fmt.Errorf("temperature: missing celsius in %s", string(b))
	}
	t.celsius = *raw.Celsius
	return nil
}
