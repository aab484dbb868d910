// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NoOpLeavesDocumentUntouched(t *testing.T) {
	var n NoOp
	n.Mask()
}

func Test_GeneratorsProduceNonEmptyValues(t *testing.T) {
	assert.NotEmpty(t, Name())
	assert.NotEmpty(t, Email())
	assert.NotEmpty(t, Phone())
	assert.NotEmpty(t, UUID())
	assert.NotEmpty(t, Address())
	assert.NotEmpty(t, Company())
	assert.NotEmpty(t, Username())
}

type innerProfile struct {
	Bio   string `mask:"company"`
	Plain string
}

type testUser struct {
	Name    string `mask:"name"`
	Email   string `mask:"email"`
	Age     int
	Profile *innerProfile
	Tags    []string
	Extra   map[string]string `mask:"name"`
}

func Test_AutoMaskStructFields(t *testing.T) {
	u := &testUser{
		Name:  "original name",
		Email: "original@example.com",
		Age:   42,
		Profile: &innerProfile{
			Bio:   "original bio",
			Plain: "untouched",
		},
		Extra: map[string]string{"k": "original extra"},
	}

	err := AutoMask(u)
	require.NoError(t, err)

	assert.NotEqual(t, "original name", u.Name)
	assert.NotEqual(t, "original@example.com", u.Email)
	assert.Equal(t, 42, u.Age)
	assert.NotEqual(t, "original bio", u.Profile.Bio)
	assert.Equal(t, "untouched", u.Profile.Plain)
	assert.NotEqual(t, "original extra", u.Extra["k"])
}

func Test_GenValidEmailProducesWellFormedAddress(t *testing.T) {
	e := genValidEmail()
	assert.Contains(t, e, "@")
	assert.NotEmpty(t, e)
}

func Test_AutoMaskRejectsNonPointer(t *testing.T) {
	err := AutoMask(testUser{})
	require.Error(t, err)
}

func Test_AutoMaskRejectsUnknownGenerator(t *testing.T) {
	type badTag struct {
		Field string `mask:"not-a-real-generator"`
	}
	err := AutoMask(&badTag{Field: "x"})
	require.Error(t, err)
}

func Test_AutoMaskNilPointer(t *testing.T) {
	var u *testUser
	err := AutoMask(u)
	require.Error(t, err)
}
