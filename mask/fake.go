// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package mask

import (
	"math/rand"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// fakerPool hands out one *gofakeit.Faker per caller instead of sharing a
// single generator behind a mutex. The transformer stage runs mask workers
// on a bounded pool of goroutines (§5 of the replication design); a shared,
// lock-guarded RNG would serialize them right back into one, so each
// generator call borrows a faker for the duration of that call and
// returns it afterward.
var fakerPool = sync.Pool{
	New: func() interface{} {
		return gofakeit.NewFaker(rand.NewSource(time.Now().UnixNano()), false)
	},
}

// borrowFaker returns a faker for the calling goroutine to use and a
// release function that must be called when done, typically via defer.
func borrowFaker() (*gofakeit.Faker, func()) {
	f := fakerPool.Get().(*gofakeit.Faker)
	return f, func() { fakerPool.Put(f) }
}

// Name returns a synthetic full name.
func Name() string {
	f, release := borrowFaker()
	defer release()
	return f.Name()
}

// Email returns a synthetic email address.
func Email() string {
	f, release := borrowFaker()
	defer release()
	return f.Email()
}

// Phone returns a synthetic phone number.
func Phone() string {
	f, release := borrowFaker()
	defer release()
	return f.Phone()
}

// UUID returns a synthetic random UUID string, for fields that only need
// to change value without preserving any semantics of the original.
func UUID() string {
	f, release := borrowFaker()
	defer release()
	return f.UUID()
}

// Address returns a synthetic street address line.
func Address() string {
	f, release := borrowFaker()
	defer release()
	return f.Address().Address
}

// Company returns a synthetic company name.
func Company() string {
	f, release := borrowFaker()
	defer release()
	return f.Company()
}

// Username returns a synthetic username.
func Username() string {
	f, release := borrowFaker()
	defer release()
	return f.Username()
}
