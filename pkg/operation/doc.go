/*
Package operation wires classification, bundle copying and profile sync into
the commands forcesync exposes.

🎯 Purpose:
- Resolves registry, ignore rules and project paths from configuration
- Runs profile sync against a remote source
- Lists Apex test classes and classified source components
- Copies source files together with the bundles they belong to

🔄 Sync flow:

	source roots ──► classify ──► local profiles ─┐
	                                              ├──► profile.Diff
	remote source ──► ListProfileNames ───────────┘        │
	                                                       ▼
	                        profile.Pipeline (batches) ◄── Retrieve()
	                                 │
	                                 ▼
	              write to resolved path ──► Reporter.LogChange
	                                 │
	                    DeleteOrphans? ──► remove Deleted paths

⚡ Errors:
- ErrInvalidInput: a path that must exist does not; nothing has been done
- ErrRemoteFetch: listing or fetching remote profiles failed; batches
  written before the failure stay on disk

🔍 Example:

	op, err := operation.New(operation.Options{
		Config: cfg,
		Source: src,
	})
	if err != nil {
		return err
	}
	res, err := op.Sync(ctx, operation.SyncRequest{
		SourceRoots:   []string{"force-app"},
		DeleteOrphans: true,
	})
*/
package operation
