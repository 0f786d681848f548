// Package terms loads term-group and label files.
//
// Term files are plain UTF-8 text with one concept per line. Synonyms on a
// line are separated by any of ',' ';' '|' or a tab. Blank lines and lines
// whose trimmed content starts with '#' are skipped. Label files follow the
// same skipping rule but every surviving line is a single label.
//
// All text is normalized to Unicode NFC so that the same term typed with
// combining accents and with precomposed characters compares equal.
package terms
