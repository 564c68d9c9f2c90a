// Package schema resolves query words to schema elements.
//
// Upstream scanners propose [Match] candidates per dataset. A [MapInfo]
// accumulates them for one user query, collapsing duplicates with [Decide]
// so that each dataset keeps only the best scoring match of an element, and
// [MapInfo.Filter] narrows the result to the requested [QueryDataType].
//
// A MapInfo belongs to one request. It is not safe for concurrent use.
package schema
