package challenge

import "errors"

var (
	// ErrChallengeNotFound indicates the challenge doesn't exist.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrNotCreator indicates a non-creator attempted to mutate a challenge.
	ErrNotCreator = errors.New("only the challenge creator can modify it")
	// ErrNotMember indicates the actor does not belong to the challenge's group.
	ErrNotMember = errors.New("not a member of the group")
	// ErrInvalidInput indicates invalid challenge input.
	ErrInvalidInput = errors.New("invalid challenge input")
	// ErrEndDateRequired indicates a round-based challenge was created without an end date.
	ErrEndDateRequired = errors.New("round-based challenges require an end date")
	// ErrInvalidCadence indicates an unknown round cadence.
	ErrInvalidCadence = errors.New("invalid round cadence")
	// ErrTooManyRounds indicates the schedule exceeded MaxRounds.
	ErrTooManyRounds = errors.New("round schedule exceeds maximum round count")
	// ErrNotRoundBased indicates a round operation on a challenge without rounds.
	ErrNotRoundBased = errors.New("challenge is not round-based")
)
