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

package status

// 📊 ChangeType is what happened to a file
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeUpdated
	ChangeDeleted
	ChangeCopied
	ChangeSkipped
	ChangeError
)

// String returns the action word used in change lines
func (t ChangeType) String() string {
	switch t {
	case ChangeAdded:
		return "Added"
	case ChangeUpdated:
		return "Updated"
	case ChangeDeleted:
		return "Deleted"
	case ChangeCopied:
		return "Copied"
	case ChangeSkipped:
		return "Skipped"
	case ChangeError:
		return "Error"
	default:
		return "Unknown"
	}
}

// 🖼️ Change is one file touched by a command
type Change struct {
	Type        ChangeType
	Name        string // Component or profile name, the file name is used when empty
	Path        string
	Description string
	Error       error
}
