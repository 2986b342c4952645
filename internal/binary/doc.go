// Package binary downloads and installs the mailsherpa binary into a working
// directory.
//
// # Steps
//
// Manager.Install runs five steps in order and stops at the first failure:
//
//  1. Detect the host platform and resolve its tag (macos, linux-arm64,
//     linux-amd64).
//  2. Download {base}/mailsherpa-{tag}.tar.gz into the working directory.
//  3. Extract the archive into the working directory.
//  4. Rename mailsherpa-{tag} to mailsherpa.
//  5. Remove the archive.
//
// Completed steps are never rolled back. A failed rename leaves the archive
// and the extracted entries behind, and the archive is only removed after a
// successful rename.
//
// # Errors
//
// Every step failure is an *Error tagged with a Kind. KindOf classifies any
// error returned by Install and Kind.ExitCode maps it to a process exit
// status:
//
//	UnsupportedPlatform  2
//	DownloadFailed       3
//	ExtractionFailed     4
//	RenameFailed         5
//	CleanupFailed        6
//
// # Trust
//
// Archives are not verified (no checksum, no signature) and extraction does
// not confine entry names to the working directory. Both rely on the archive
// coming from the single fixed origin in DefaultBaseURL.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    WorkDir: cwd,
//	    Out:     os.Stdout,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := mgr.Install(ctx)
//	if err != nil {
//	    os.Exit(binary.ExitCode(err))
//	}
package binary
