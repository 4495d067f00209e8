// Package dialect detects metadata file dialects and holds the normalization
// rules shared by every dialect parser.
//
// Sub-packages turn one dialect into a model.Graph (or a manifest):
//   - manifest: JSON and .properties top-level manifests
//   - zclxml: <configurator>/<zap> cluster and type libraries
//   - dotdot: <library>/<zcl:cluster> files and their xi:include fan-out
//
// A structurally invalid file yields a *ParseError wrapping
// zclload.ErrParseFailed and no graph.
package dialect
