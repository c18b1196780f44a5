// Package model defines the project entities exchanged by blueprint.
//
// # Entities
//
// A [ProjectVersion] owns four forests of entities:
//
//   - [Zone]: physical areas, nested through Parent/Children
//   - [DeviceItem]: installed devices, nested through Parent/Children
//   - [CFNode]: rule-graph nodes with a typed property bag
//   - [ServiceInstance]: configured services bound to devices
//
// The remaining types ([CFProvider], [DeviceCategory], [DeviceClass],
// [DeviceType], [ProtocolAdapter], [ServiceDefinition], [User],
// [CompanyGroup], [Project]) are reference data. They are owned by the
// persistence layer and referenced, never created, by an import.
//
// # Trees
//
// Parent/child relations are trees: a node has at most one parent. Use the
// SetParent methods to link nodes, which keep Parent and Children in sync.
// Cycles are not detected; callers that build graphs by hand must avoid them.
//
// # Optional fields
//
// String fields use the empty string for "unset". Exact-match comparisons on
// natural keys therefore treat two unset fields as equal and an unset field
// as different from any set one.
//
// # Property values
//
// [CFNode] properties are a closed sum type: every [Value] is one of [Float],
// [Double], [Boolean], [Text], [Long], [Int] or [TextArray], and its
// [ValueType] tag is derived from the Go type. [ParseValue] is the only
// place an unknown tag can appear; it falls back to [Text].
package model
