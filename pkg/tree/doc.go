// Package tree unrolls a package dependency graph into an explicit rooted tree
// and measures how deep the chains go.
//
// # Overview
//
// The input is a dependency index: a mapping from package identifier to the
// identifiers it declares as direct dependencies. The graph described by the
// index may share sub-dependencies between packages and may even contain
// cycles. [Build] turns it into a tree rooted at a synthetic node with one
// child per top-level package. Every occurrence of a package becomes its own
// [Node], so a package reachable through two independent paths shows up twice
// at (possibly) different depths. This is a tree unrolling, not a DAG merge.
//
// # Cycles
//
// Before a node is expanded, its identifier is checked against the chain of
// ancestors from the parent up to the root ([Node.HasAncestor]). A match
// truncates the branch. There is deliberately no global visited set: shared
// dependencies must still be expanded under every parent that needs them,
// and only a true ancestor match blocks expansion.
//
// # Analysis
//
// Every node created during the build is appended to a flat registry owned by
// the returned [Tree]. After the build completes, [Tree.Analyze] computes the
// maximum depth over the registry and the distinct identifiers found there,
// each with the bottom-up ancestor chain of one representative node.
//
// # Diagnostics
//
// The builder reports each package it dives into, each dependency it cannot
// resolve and each cycle it truncates to an [Observer]. Diagnostics never
// affect control flow.
//
// # Concurrency
//
// Building is single-threaded and synchronous. A [Tree] is immutable once
// [Build] returns and may then be read from multiple goroutines.
package tree
