package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// NewID returns a random surrogate id for accounts and loans.
func NewID() string {
	return uuid.NewString()
}

// GenerateAccountNumber returns a random numeric string of exactly length digits.
// Uniqueness is enforced by the store; callers regenerate on collision.
func GenerateAccountNumber(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid account number length %d", length)
	}
	ten := big.NewInt(10)
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// ValidateAccountNumber validates the account number format
func ValidateAccountNumber(accountNumber string, length int) bool {
	if len(accountNumber) != length {
		return false
	}
	for _, r := range accountNumber {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IDGenerator issues monotonically increasing transaction ids. Each running
// instance needs its own node number.
type IDGenerator struct {
	node *snowflake.Node
}

func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node %d: %w", nodeID, err)
	}
	return &IDGenerator{node: node}, nil
}

func (g *IDGenerator) Next() int64 {
	return g.node.Generate().Int64()
}
