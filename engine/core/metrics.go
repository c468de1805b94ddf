package core

import "github.com/iftodebogdan/gitechdemo/engine/containers"

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling frame time average and the frame count of the last second.
type Metrics struct {
	FrameAVGCounter    uint8
	MStimes            *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

func NewMetrics() *Metrics {
	return &Metrics{MStimes: containers.NewRingQueue[float64](int(AVG_COUNT))}
}

// Update takes the elapsed time of the last frame, in seconds.
func (m *Metrics) Update(frameElapsedTime float64) {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.MStimes.Push(frameMS)
	if m.FrameAVGCounter == AVG_COUNT-1 {
		m.MSavg = 0
		m.MStimes.Each(func(ms float64) {
			m.MSavg += ms
		})
		m.MSavg /= float64(m.MStimes.Len())
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
