// Package fstest provides a conformance test suite for artifact storage
// providers implementing fs.Filesystem.
//
// Object stores have no real directories, so the suite only checks the file
// contract the artifact materializer relies on: nested writes, read back,
// stat, existence checks, removal and not-exist reporting.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New()
//	    })
//	}
package fstest

import (
	"testing"

	"github.com/PaperMC/bibliothek/fs"
)

// TestSuite runs all conformance tests against a filesystem.
// The newFS function should return a fresh, empty filesystem for each test.
func TestSuite(t *testing.T, newFS func() fs.Filesystem) {
	TestSuiteWithSkip(t, newFS, nil)
}

// TestSuiteWithSkip runs conformance tests, skipping the named groups.
func TestSuiteWithSkip(t *testing.T, newFS func() fs.Filesystem, skipTests []string) {
	shouldSkip := func(testName string) bool {
		for _, skip := range skipTests {
			if skip == testName {
				return true
			}
		}
		return false
	}

	t.Run("Read", func(t *testing.T) {
		if shouldSkip("Read") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestRead(t, newFS())
	})

	t.Run("Write", func(t *testing.T) {
		if shouldSkip("Write") {
			t.Skip("Skipped by provider configuration")
			return
		}
		TestWrite(t, newFS())
	})
}
