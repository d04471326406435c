package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

func CoursesToJson(file string, courses []Course) error {
	bytes, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal courses: %w", err)
	}
	if err := os.WriteFile(file, bytes, 0666); err != nil {
		return fmt.Errorf("cannot write courses file: %w", err)
	}
	return nil
}

func CoursesFromJson(file string) ([]Course, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read courses file: %w", err)
	}
	var inputJson []map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse courses file %v: %w", file, err)
	}

	var courses []Course
	if err := mapstructure.Decode(inputJson, &courses); err != nil {
		return nil, fmt.Errorf("cannot decode courses file %v: %w", file, err)
	}
	return courses, nil
}
