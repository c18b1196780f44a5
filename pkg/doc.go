// Package pkg provides the libraries behind blueprint, the project-version
// import/export engine.
//
// # Overview
//
// A project version is a tree of zones, devices, cloud nodes and service
// instances that point into shared catalog data (device types, protocol
// adapters, service definitions, templates, users). blueprint moves a version
// in and out of a self-contained JSON exchange document, writing catalog
// references by natural key and resolving them again on import.
//
// The pkg directory is organized into these areas:
//
//  1. [model] - Domain entities
//  2. [document] - Generic JSON object access for exchange documents
//  3. [transfer] - Import and export engine (session, codecs, orchestrator)
//  4. [repository] - Catalog lookups and version persistence (memory, mongo)
//  5. [pipeline] - Orchestration with caching, hooks and logging
//  6. [cache] - Export and graph cache (file, redis)
//  7. [render/nodelink] - Node-link diagrams of exchange documents
//  8. [catalog], [config] - TOML catalog and configuration files
//
// # Architecture
//
//	exchange document (JSON)
//	         ↓
//	    [transfer] Session resolves natural keys via [repository]
//	         ↓
//	    [model] ProjectVersion + recoverable errors
//	         ↓
//	    [repository] Store.SaveProjectVersion
//
// Export runs the same path backwards: Store.LoadProjectVersion, then
// [transfer.Export] assigns document IDs and writes lookup blocks.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(memory.New(), nil, nil, logger)
//	res, err := runner.Import(ctx, data, pipeline.ImportOptions{})
//	if err != nil {
//	    return err // malformed document, storage failure, ...
//	}
//	for _, msg := range res.Errors {
//	    logger.Warn(msg) // unresolved references
//	}
//	doc, _, err := runner.Export(ctx, res.VersionID, pipeline.ExportOptions{})
//
// [model]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/model
// [document]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/document
// [transfer]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/transfer
// [transfer.Export]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/transfer#Export
// [repository]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/repository
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/render/nodelink
// [catalog]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/catalog
// [config]: https://pkg.go.dev/github.com/matzehuels/blueprint/pkg/config
package pkg
