// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads forcesync project configuration.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Finds .forcesync.{yaml,yml,json,hcl} in the project root
- Parses it with the parser registered for its extension
- Fills defaults and rejects unusable values
- Falls back to sfdx-project.json for package directories

🔍 Example:

	# .forcesync.yaml
	package_directories: [force-app]
	remote:
	  provider: github
	  repo: github.com/acme/org-metadata
	  path: profiles
	profiles:
	  exclude_packages: true
	log:
	  level: debug
	  file: .forcesync/forcesync.log

The HCL form can read the environment:

	remote {
	  provider = "github"
	  repo     = env.FORCESYNC_REPO
	}
*/
package config
