// Package locator exposes the two top-level operations of the engine:
// indexing a reference recording and deciding whether a query recording's
// spoken content appears within it.
package locator
