// Package resources locates the assistant's bundled resources directory and
// the documents inside it (log file, settings, auth cache).
//
// Discovery follows the bundle layout first (<exe_dir>/resources) and then
// the development layouts under the working directory, unless the config
// pins an explicit directory.
package resources
