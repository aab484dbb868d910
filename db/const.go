// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Initial reference and motivation taken from
// https://gitlab.com/project-emco/core/emco-base/-/blob/main/src/orchestrator/pkg/infra/db

package db

const (
	defaultSourceIdentifier = "TuxedoMongoClient"
)

const (
	// defaultAuthMechanism is the SASL mechanism used against both the
	// source and target deployments.
	defaultAuthMechanism = "SCRAM-SHA-256"

	// defaultAuthSource is the database credentials are verified against
	// when the caller does not override it.
	defaultAuthSource = "admin"
)
