package audio

import "encoding/binary"

const (
	// DefaultSampleRate is the synthesis capability's output rate.
	DefaultSampleRate = 24000
	// DefaultBitrate is the MP3 target bitrate.
	DefaultBitrate = "192k"

	channels    = 1
	sampleWidth = 2 // 16-bit
)

// WAVFromPCM wraps raw PCM samples (mono, 16-bit little-endian) into a
// WAV container at the given sample rate.
func WAVFromPCM(pcm []byte, sampleRate int) []byte {
	byteRate := sampleRate * channels * sampleWidth
	blockAlign := channels * sampleWidth

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, sampleWidth*8)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)

	return buf
}

// PCMDuration returns the playback length in seconds of a raw PCM buffer
// at the given sample rate.
func PCMDuration(pcmLen, sampleRate int) float64 {
	return float64(pcmLen) / float64(sampleRate*channels*sampleWidth)
}
