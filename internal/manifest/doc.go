// Package manifest implements the IoT Edge deployment manifest model.
//
// A deployment manifest is a JSON document that lists the modules an edge
// device runs. The runtime modules live under the edge agent's desired
// properties in "systemModules"; application modules live next to them in
// "modules":
//
//	{
//	  "modulesContent": {
//	    "$edgeAgent": {
//	      "properties.desired": {
//	        "systemModules": { "edgeAgent": {...}, "edgeHub": {...} },
//	        "modules": { "filtermodule": {...} }
//	      }
//	    },
//	    "$edgeHub": { "properties.desired": { "routes": {...} } }
//	  }
//	}
//
// # Build targets
//
// A user module names its build targets either with a "platforms" mapping
// in its settings or with an image placeholder of the form
// ${MODULES.<module>.<platform>}. ModulesToProcess expands these into
// (module, platform) pairs in document order.
//
// # Module templates
//
// AddModuleTemplate renders a module skeleton (text/template with sprig
// functions) and inserts it into the user modules. ${NAME} placeholders in
// the skeleton are resolved from the environment; ${MODULES.*} references
// are kept for the build step.
//
// The document is held as raw JSON so key order and unknown fields are
// preserved across reads, edits, and Dump.
package manifest
