// Package reverb provides block-synchronous reverberators.
//
// Included processors:
//   - Tank: a shared circular tank read and written through groups of taps,
//     each group mixed by a scaled Householder reflection once per sample.
//     Runs in fixed sub-blocks so the taps can be copied in bulk.
//   - AllpassReverb: mid/side series all-pass diffusers with mutually
//     coprime delay lengths.
package reverb
