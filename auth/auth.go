// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// AdminCookie is the cookie that carries the host dashboard secret
const AdminCookie = "admin_token"

var (
	ErrInvalidAdminToken = errors.New("invalid admin token")
	ErrInvalidDeviceID   = errors.New("invalid device id")
)

// ValidateAdminToken checks a presented secret against the configured one
// in constant time. An empty configured token never validates.
func ValidateAdminToken(presented, expected string) error {
	if expected == "" || presented == "" {
		return ErrInvalidAdminToken
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return ErrInvalidAdminToken
	}
	return nil
}

// GenerateSlugSuffix returns 4 random base36 characters for de-duplicating
// session slugs.
func GenerateSlugSuffix() (string, error) {
	const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	result := make([]byte, 4)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Chars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate slug suffix: %w", err)
		}
		result[i] = base36Chars[n.Int64()]
	}
	return string(result), nil
}

// ValidateDeviceID accepts the UUIDs browsers generate and persist for
// voting. It proves nothing about who is voting.
func ValidateDeviceID(deviceID string) error {
	if _, err := uuid.Parse(deviceID); err != nil {
		return ErrInvalidDeviceID
	}
	return nil
}
