// Package save installs Savables into a target directory.
//
// Every file goes through three names inside its directory: content is
// written to the staging name N<file>, the current <file> is rotated to the
// backup name O<file> (replacing the previous backup) and the staging file
// is renamed over <file>. A crash at any point leaves either the previous
// or the new version under the main name.
//
// Items carrying a SourceURL and Indexed are recorded in the duplicate index
// (see package index) before their content is fetched, so a URL is mirrored
// at most once per target directory.
package save
