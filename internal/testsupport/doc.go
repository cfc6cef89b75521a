// Package testsupport provides shared test fixtures: temp-dir configs, a
// deterministic in-process embedder, and transcript builders.
package testsupport
