package state

/**
 * @brief Captures render state values and puts them back on Restore. Passes
 * open a scope before touching a toggle and defer the restore so every exit
 * path leaves the state as it found it:
 *
 *	defer state.Save(rs).ColorBlend().ZWrite().ZFunc().Restore()
 *
 * Values are restored in reverse capture order.
 */
type Scope struct {
	rs       *RenderState
	restores []func()
}

func Save(rs *RenderState) *Scope {
	return &Scope{rs: rs}
}

func (s *Scope) capture(restore func()) *Scope {
	s.restores = append(s.restores, restore)
	return s
}

// ColorBlend captures the blend enable flag and the source/destination factors.
func (s *Scope) ColorBlend() *Scope {
	enabled, src, dst := s.rs.ColorBlendEnabled(), s.rs.ColorSrcBlend(), s.rs.ColorDstBlend()
	return s.capture(func() {
		s.rs.SetColorBlendEnabled(enabled)
		s.rs.SetColorSrcBlend(src)
		s.rs.SetColorDstBlend(dst)
	})
}

// ColorBlendEnabled captures only the blend enable flag.
func (s *Scope) ColorBlendEnabled() *Scope {
	enabled := s.rs.ColorBlendEnabled()
	return s.capture(func() { s.rs.SetColorBlendEnabled(enabled) })
}

func (s *Scope) ZWrite() *Scope {
	enabled := s.rs.ZWriteEnabled()
	return s.capture(func() { s.rs.SetZWriteEnabled(enabled) })
}

func (s *Scope) ZFunc() *Scope {
	fn := s.rs.ZFunc()
	return s.capture(func() { s.rs.SetZFunc(fn) })
}

func (s *Scope) ColorWrite() *Scope {
	mask := s.rs.ColorWriteMask()
	return s.capture(func() { s.rs.SetColorWriteMask(mask) })
}

// Scissor captures the scissor enable flag and rectangle.
func (s *Scope) Scissor() *Scope {
	enabled := s.rs.ScissorEnabled()
	size, offset := s.rs.Scissor()
	return s.capture(func() {
		s.rs.SetScissor(size, offset)
		s.rs.SetScissorEnabled(enabled)
	})
}

func (s *Scope) SRGBWrite() *Scope {
	enabled := s.rs.SRGBWriteEnabled()
	return s.capture(func() { s.rs.SetSRGBWriteEnabled(enabled) })
}

func (s *Scope) CullMode() *Scope {
	mode := s.rs.CullMode()
	return s.capture(func() { s.rs.SetCullMode(mode) })
}

func (s *Scope) FillMode() *Scope {
	mode := s.rs.FillMode()
	return s.capture(func() { s.rs.SetFillMode(mode) })
}

// Stencil captures the whole stencil configuration.
func (s *Scope) Stencil() *Scope {
	v := s.rs.values
	return s.capture(func() {
		s.rs.SetStencilEnabled(v.stencilEnabled)
		s.rs.SetStencilFunc(v.stencilFunc)
		s.rs.SetStencilRef(v.stencilRef)
		s.rs.SetStencilMask(v.stencilMask)
		s.rs.SetStencilWriteMask(v.stencilWriteMask)
		s.rs.SetStencilFail(v.stencilFail)
		s.rs.SetStencilZFail(v.stencilZFail)
		s.rs.SetStencilPass(v.stencilPass)
	})
}

// All captures every value of the render state.
func (s *Scope) All() *Scope {
	snap := s.rs.Snapshot()
	return s.capture(func() { s.rs.Apply(snap) })
}

func (s *Scope) Restore() {
	for i := len(s.restores) - 1; i >= 0; i-- {
		s.restores[i]()
	}
	s.restores = nil
}

// Apply pushes every value of a snapshot back to the device.
func (rs *RenderState) Apply(snap Snapshot) {
	v := snap.values
	rs.SetAlphaTestEnabled(v.alphaTestEnabled)
	rs.SetAlphaTestFunc(v.alphaTestFunc)
	rs.SetAlphaTestRef(v.alphaTestRef)
	rs.SetColorBlendEnabled(v.colorBlendEnabled)
	rs.SetColorSrcBlend(v.colorSrcBlend)
	rs.SetColorDstBlend(v.colorDstBlend)
	rs.SetColorBlendFactor(v.blendFactor)
	rs.SetCullMode(v.cullMode)
	rs.SetZEnabled(v.zEnabled)
	rs.SetZFunc(v.zFunc)
	rs.SetZWriteEnabled(v.zWriteEnabled)
	rs.SetColorWriteMask(v.colorWrite)
	rs.SetSlopeScaledDepthBias(v.slopeScaledDepthBias)
	rs.SetDepthBias(v.depthBias)
	rs.SetStencilEnabled(v.stencilEnabled)
	rs.SetStencilFunc(v.stencilFunc)
	rs.SetStencilRef(v.stencilRef)
	rs.SetStencilMask(v.stencilMask)
	rs.SetStencilWriteMask(v.stencilWriteMask)
	rs.SetStencilFail(v.stencilFail)
	rs.SetStencilZFail(v.stencilZFail)
	rs.SetStencilPass(v.stencilPass)
	rs.SetFillMode(v.fillMode)
	rs.SetScissor(v.scissorSize, v.scissorOffset)
	rs.SetScissorEnabled(v.scissorEnabled)
	rs.SetSRGBWriteEnabled(v.sRGBWriteEnabled)
}
