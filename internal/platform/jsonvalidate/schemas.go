package jsonvalidate

import "path/filepath"

// Schema file locations, relative to the configured base directory.
const (
	SchemaModuleAccess      = "jsonSchema/module_access.json"
	SchemaOrderDataPost     = "jsonSchema/order_data_post.json"
	SchemaOrderDataPut      = "jsonSchema/order_data_put.json"
	SchemaOrderDataPatch    = "jsonSchema/order_data_patch.json"
	SchemaListenerInfoPost  = "jsonSchema/listener_info_post.json"
	SchemaListenerInfoPut   = "jsonSchema/listener_info_put.json"
	SchemaListenerInfoPatch = "jsonSchema/listener_info_patch.json"
)

// SchemaPath resolves a schema reference under the base directory.
func SchemaPath(baseDir, schemaRef string) string {
	return filepath.Join(baseDir, schemaRef)
}
