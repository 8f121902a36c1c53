package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownRole        = errors.New("unknown role")
	ErrNotEnoughQuestions = errors.New("not enough questions for role")
	ErrInterviewComplete  = errors.New("interview already complete")
	ErrNotComplete        = errors.New("interview not completed yet")
	ErrForbidden          = errors.New("interview belongs to another candidate")
)
