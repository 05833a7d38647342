package swagger

import _ "embed"

// OpenAPI is the OpenAPI 3 document of the /stats, /cutflow, /categories and
// /healthz endpoints.
//
//go:embed openapi.yaml
var OpenAPI []byte
