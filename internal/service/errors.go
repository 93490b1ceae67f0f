package service

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateCertificate = errors.New("certificate ID already exists")
	ErrMetadataPinFailure   = errors.New("IPFS upload failed")
	ErrMintFailure          = errors.New("blockchain minting failed")
	ErrTokenIdConflict      = errors.New("token ID already recorded for another certificate")
	ErrNotFound             = errors.New("not found")
	ErrInvalidTokenId       = errors.New("invalid token ID")
)
