// Package pipeline runs project files through the report steps: load the
// project, extract the report rows, prepare the report directory, write the
// output files and record the run in the history database.
//
// A Pipeline executes steps in sequence for one Run, checking for
// cancellation between steps. BatchProcessor runs several projects
// concurrently with a limit using errgroup.
package pipeline
