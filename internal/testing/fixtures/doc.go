// Package fixtures provides test data factories for integration tests.
//
// Each factory method creates a row with sensible defaults through the
// repositories and returns the stored model. Option functions customize
// the defaults:
//
//	f := fixtures.New(tdb.DB)
//	trainer := f.CreateTrainer(t)
//	monster := f.CreateMonster(t, trainer, func(o *fixtures.MonsterOpts) {
//	    o.Level = 50
//	})
//
// Names carry a random suffix so fixtures never collide on unique keys.
package fixtures
