package trigger

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var validDetectors = map[Detector]struct{}{
	Averaged: {},
	Peak:     {},
}

func (d *Detector) UnmarshalYAML(value *yaml.Node) error {
	v := Detector(value.Value)
	if _, ok := validDetectors[v]; !ok {
		return fmt.Errorf("trigger.Detector: invalid value %q, want %q or %q", value.Value, Averaged, Peak)
	}
	*d = v
	return nil
}

func (d Detector) MarshalYAML() (interface{}, error) {
	return string(d), nil
}
