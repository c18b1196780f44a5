// Package transfer imports and exports project versions as a single JSON
// exchange document.
//
// # Overview
//
// Export flattens the entity graph of a [model.ProjectVersion] into ID-keyed
// node arrays and separate edge arrays. Import reverses this: it rebuilds
// every node first, then applies the edges, so the order of records in the
// document does not matter.
//
// References to persisted entities outside the document (providers, device
// types, templates, users, projects) travel as natural keys in a lookup
// block and are re-resolved against a [repository.Repository] on import.
//
// # JSON Format
//
//	{
//	  "projectVersion": {"id": 3, "name": "v1", "_projectName_": "HQ", "_companyName_": "Acme"},
//	  "zones": [{"id": 1, "name": "Floor 1"}, {"id": 2, "name": "Lobby"}],
//	  "zone_zone": [[1, 2]],
//	  "devices": [{"id": 10, "name": "Dimmer", "_zoneId_": 2, "_deviceTypes_": [], "_deviceClasses_": []}],
//	  "device_device": [],
//	  "cfnodes": [
//	    {"id": 20, "name": "Scene", "properties": [{"key": "level", "value": 0.5, "type": "double"}],
//	     "_providerName_": "scene", "_providerTypeName_": "SCENE", "_projectVersionId_": 3}
//	  ],
//	  "cfnode_cfnode": [],
//	  "serviceInstances": [{"id": 30, "name": "Weather", "_serviceDefinitionUid_": "wx", "_deviceIds_": [10]}]
//	}
//
// Document IDs only have to be unique per kind within one document. Edge
// arrays hold [parent, child] pairs. Keys wrapped in underscores form the
// lookup block: they exist only to resolve references and are never stored
// as attributes.
//
// # Property Values
//
// Rule-graph node properties are written as {key, value, type} with type
// one of float, double, boolean, string, long, int or string[]. On import
// the value is read as text and parsed according to the tag; an unknown or
// missing tag keeps the raw text as a string.
//
// # Errors
//
// Import is best effort. A malformed document is the only input that fails
// the whole call. Every other problem (a natural key without a match, a
// duplicate key in the reference data, a dangling edge, an unparseable
// property value) is recorded in the [Session] and returned sorted in
// [Result.Errors], with the affected reference left unset.
//
// # Concurrency
//
// Each import uses its own [Session]; sessions are never shared. Concurrent
// imports against the same repository are safe as long as the repository
// is.
package transfer
