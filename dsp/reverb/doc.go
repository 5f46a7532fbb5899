// Package reverb provides the stereo Schroeder/Freeverb network used as the
// reverb send of the drone voice.
package reverb
