package model

import "fmt"

type MalformedInstanceError struct {
	Entity string // Kind and name of the offending entity, e.g. promotion "A1"
	Reason string
}

func (err MalformedInstanceError) Error() string {
	return fmt.Sprintf("malformed instance: %v: %v", err.Entity, err.Reason)
}

type UnknownSubjectError struct {
	Teacher string
	Subject string
}

func (err UnknownSubjectError) Error() string {
	return fmt.Sprintf("teacher \"%v\" references unknown subject \"%v\"", err.Teacher, err.Subject)
}

type NoQualifiedTeacherError struct {
	Promotion string
	Group     string
	Subject   string
}

func (err NoQualifiedTeacherError) Error() string {
	return fmt.Sprintf("no qualified teacher for subject \"%v\" required by group \"%v\" of promotion \"%v\"", err.Subject, err.Group, err.Promotion)
}

func malformed(entity string, format string, args ...any) error {
	return MalformedInstanceError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}
