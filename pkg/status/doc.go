/*
Package status describes what a command is doing: the file changes it makes
and its progress through a batch run.

🎯 Purpose:
- Shows live batch progress while profiles are retrieved
- Names the kinds of file change commands report

🔄 Flow:

	operation ──► Progress.Start(total)
	          ──► Progress.Increment(batch) ... ──► Progress.Stop()
	          ──► operation.Reporter.LogChange(Change{Type, Name, Path}) ...

🤝 Implementations:
- Bar: pterm progress bar for interactive terminals
- LogProgress: zerolog lines for pipes and CI logs

NewProgress picks Bar or LogProgress. Both satisfy profile.Progress.
*/
package status
