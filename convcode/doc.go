// Package convcode implements a parametrised convolutional encoder and a
// Viterbi maximum-likelihood decoder.
//
// A Coder owns all state for one encode+decode pair sharing the same
// constraint length and generator polynomials: the precomputed state
// machine tables, the encoder's shift register, and (when decoding is
// enabled) the trellis and path-metric vectors the Viterbi decoder needs.
// Encoding and decoding share no mutable state and may run concurrently
// on two goroutines against the same Coder, provided the Sink functions
// and any buffers they touch are themselves safe for that; a single
// Coder must otherwise not be driven from two goroutines at once.
package convcode
