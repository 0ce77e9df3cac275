// Package probe discovers which resource a module would open, without
// letting the module open it.
//
// A probe executes the target module with an import hook installed. The
// hook answers every import the module graph makes:
//
//   - the probed dependency (h5py by default) resolves to a Recorder, a
//     stand-in exposing only the entry point (File). Its first call records
//     the path argument and stops the run.
//   - the system facility (os) and the target itself resolve normally.
//   - every other name resolves to an inert placeholder that accepts any
//     attribute access or call and does nothing, even when a real copy of
//     that module is already cached.
//
// The run is stopped by cancelling its context with an *AbortSignal cause;
// the interpreter checks the cause before every statement, so a target
// cannot swallow the stop with try(). Probe.Run never fails: any other
// error is reported to the diagnostics logger as an *UnrelatedImportFailure
// and the probe completes with or without a captured path. Emit then
// writes the basename of the captured path, or reports ErrResourceNotFound.
package probe
