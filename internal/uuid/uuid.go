// Package uuid generates identifiers. Random ids are used for new battles;
// derived ids are used inside the engine so that replaying a battle log
// produces byte-identical snapshots.
package uuid

//go:generate mockgen -destination=mocks/mock_generator.go -package=mockuuid -source=uuid.go

import (
	"strings"

	"github.com/google/uuid"
)

// battleNamespace scopes every derived id to this engine
var battleNamespace = uuid.MustParse("6f1c2f0e-8d4b-4b8e-9a53-0d5f3c1e7a21")

// Generator is an interface for generating UUIDs
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements Generator with random v4 UUIDs
type GoogleUUIDGenerator struct{}

// New generates a new UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// Derive returns a name-based (SHA-1) UUID for the given parts. The same
// parts always yield the same id.
func Derive(parts ...string) string {
	return uuid.NewSHA1(battleNamespace, []byte(strings.Join(parts, "/"))).String()
}
