// SPDX-License-Identifier: EPL-2.0

// Package overdub records new layers in sync with existing tracks.
//
// A Session plays the base track and previously recorded layers through
// a mix renderer while capturing the incoming signal to a new WAV file.
// The host feeds capture buffers from its real-time callback:
//
//	sess := overdub.NewSession(overdub.Config{
//	    BasePath:         "song.wav",
//	    Output:           &overdub.OtoOutput{},
//	    HeadphonesActive: hw.HeadphonesActive,
//	})
//	err := sess.Prepare()
//	err = sess.StartRecording()
//	// from the capture callback:
//	sess.CaptureBuffer(buf)
//	res, err := sess.StopRecording()
//
// The capture path never blocks: buffers are copied onto a queue and
// written to disk by a background goroutine, and the peak meter is
// updated with atomics. StopRecording drains the queue before closing
// the file, so the reported duration is frame accurate. Interrupt ends
// a recording early but still flushes everything captured so far into a
// valid file.
//
// Recording is refused without headphone monitoring, since speaker
// playback would bleed into the capture, and when the capture directory
// is low on space.
package overdub
