/*
Package config loads the engine configuration and its handler recipes.

	            +-------------+
	            |   Config    |
	            |  (engine)   |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  YAML   |   |  JSON   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+
	                   |
	            +------+------+
	            |   Recipe    |
	            |  .Build()   |
	            +------+------+
	                   |
	           handler registry

🎯 Purpose:
- Reads .batchfx.yaml, .batchfx.yml, .batchfx.json or .batchfx.hcl
- Validates values and fills in defaults
- Turns named recipes into configured handlers

🔄 Flow:
1. Find locates the config file in a directory
2. Load picks a Parser by extension and decodes strictly
3. Validate applies defaults and builds every recipe once
4. Callers fetch a Recipe by name and Build a fresh handler per run

📝 Recipes:

	recipes:
	  - name: tidy-photos
	    handler: FileRenameHandler
	    include: ["*.JPG", "*.jpeg"]
	    steps:
	      - handler: CaseTransformHandler
	        args: { Upper: false }
	      - handler: FileDuplicateHandler
	        args: { Template: "_N", Width: 3 }

A recipe names a registered handler kind. Pipe, Combine and Rename take
their members from steps; every other kind rejects them. Args are set
through the handler's ArgumentMap, so unknown names and out-of-range values
fail validation before anything runs.
*/
package config
