// Package plugin is the host-facing contract of the audio processors.
//
// A Descriptor names a processor, its audio ports, whether it takes note
// events, and the control slots it reads. A Factory builds a Plugin for one
// sample rate; Process is then called once per audio block on the audio
// thread and must not allocate, block or log.
//
// Controls is the flat bank of 128 seven-bit slots shared between the audio
// thread and whoever edits parameters. Slots are atomic, so a host may Set
// from any goroutine while Process runs. Declared slots with a persistence
// key round-trip through Snapshot/Restore and the JSON State.
package plugin
