package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/iftodebogdan/gitechdemo/engine/core"
	"github.com/iftodebogdan/gitechdemo/engine/math"
)

const MAX_NUM_CASCADES = 9

type AppConfig struct {
	Name      string `toml:"name"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
	PosX      int32  `toml:"pos_x"`
	PosY      int32  `toml:"pos_y"`
	LogLevel  string `toml:"log_level"`
	AssetsDir string `toml:"assets_dir"`
	// Recompile shaders when their source changes on disk.
	HotReload bool `toml:"hot_reload"`
	// BMFont descriptor used for the loading screen, relative to AssetsDir.
	// Loading progress only goes to the log when empty.
	LoadingFont string `toml:"loading_font"`
}

type SceneConfig struct {
	Model      string  `toml:"model"`
	SkyTexture string  `toml:"sky_texture"`
	ZPrepass   bool    `toml:"z_prepass"`
	ZNear      float32 `toml:"z_near"`
	ZFar       float32 `toml:"z_far"`
	/** @brief Initial camera position. */
	CameraPosition math.Vec3 `toml:"camera_position"`
	/** @brief Rows of the initial camera rotation matrix. */
	CameraRotation [3]math.Vec3 `toml:"camera_rotation"`
	MoveSpeed      float32      `toml:"move_speed"`
	FastMultiplier float32      `toml:"fast_multiplier"`
	SlowMultiplier float32      `toml:"slow_multiplier"`
	NoiseSeed      uint64       `toml:"noise_seed"`
	AnimateLight   bool         `toml:"animate_light"`
}

type LightingConfig struct {
	Ambient          bool      `toml:"ambient"`
	Directional      bool      `toml:"directional"`
	Indirect         bool      `toml:"indirect"`
	AmbientOcclusion bool      `toml:"ambient_occlusion"`
	AmbientFactor    float32   `toml:"ambient_factor"`
	DiffuseFactor    float32   `toml:"diffuse_factor"`
	SpecFactor       float32   `toml:"spec_factor"`
	SunRadius        float32   `toml:"sun_radius"`
	SunBrightness    float32   `toml:"sun_brightness"`
	InitialDirection math.Vec3 `toml:"initial_direction"`
}

type ShadowConfig struct {
	DepthBias        float32 `toml:"depth_bias"`
	MapSize          uint32  `toml:"map_size"`
	PCFKernelSize    int     `toml:"pcf_kernel_size"`
	DebugCascades    bool    `toml:"debug_cascades"`
	NumCascades      int     `toml:"num_cascades"`
	SplitFactor      float32 `toml:"split_factor"`
	MaxViewDepth     float32 `toml:"max_view_depth"`
	CascadeBlendSize float32 `toml:"cascade_blend_size"`
}

type RSMConfig struct {
	Size           uint32  `toml:"size"`
	NumPasses      int     `toml:"num_passes"`
	SamplesPerPass int     `toml:"samples_per_pass"`
	Intensity      float32 `toml:"intensity"`
	KernelScale    float32 `toml:"kernel_scale"`
	QuarterRes     bool    `toml:"quarter_res"`
}

type SSAOConfig struct {
	SampleRadius float32 `toml:"sample_radius"`
	Intensity    float32 `toml:"intensity"`
	Scale        float32 `toml:"scale"`
	Bias         float32 `toml:"bias"`
	BlurKernel   []int32 `toml:"blur_kernel"`
}

type HDRConfig struct {
	ToneMapping      bool      `toml:"tone_mapping"`
	ExposureBias     float32   `toml:"exposure_bias"`
	AvgLumaClamp     math.Vec2 `toml:"avg_luma_clamp"`
	ShoulderStrength float32   `toml:"shoulder_strength"`
	LinearStrength   float32   `toml:"linear_strength"`
	LinearAngle      float32   `toml:"linear_angle"`
	ToeStrength      float32   `toml:"toe_strength"`
	ToeNumerator     float32   `toml:"toe_numerator"`
	ToeDenominator   float32   `toml:"toe_denominator"`
	LinearWhite      float32   `toml:"linear_white"`
	LumaAdaptSpeed   float32   `toml:"luma_adapt_speed"`
}

type BloomConfig struct {
	Enabled             bool    `toml:"enabled"`
	BrightnessThreshold float32 `toml:"brightness_threshold"`
	Strength            float32 `toml:"strength"`
	Power               float32 `toml:"power"`
	BlurKernel          []int32 `toml:"blur_kernel"`
}

type FXAAConfig struct {
	Enabled          bool    `toml:"enabled"`
	Subpix           float32 `toml:"subpix"`
	EdgeThreshold    float32 `toml:"edge_threshold"`
	EdgeThresholdMin float32 `toml:"edge_threshold_min"`
}

type DoFConfig struct {
	Enabled            bool      `toml:"enabled"`
	QuarterRes         bool      `toml:"quarter_res"`
	FocalDepth         float32   `toml:"focal_depth"`
	FocalLength        float32   `toml:"focal_length"`
	FStop              float32   `toml:"f_stop"`
	CoC                float32   `toml:"coc"`
	NearStart          float32   `toml:"near_start"`
	NearFalloff        float32   `toml:"near_falloff"`
	FarStart           float32   `toml:"far_start"`
	FarFalloff         float32   `toml:"far_falloff"`
	ManualDoF          bool      `toml:"manual_dof"`
	DebugFocus         bool      `toml:"debug_focus"`
	Autofocus          bool      `toml:"autofocus"`
	FocusPoint         math.Vec2 `toml:"focus_point"`
	MaxBlur            float32   `toml:"max_blur"`
	HighlightThreshold float32   `toml:"highlight_threshold"`
	HighlightGain      float32   `toml:"highlight_gain"`
	BokehBias          float32   `toml:"bokeh_bias"`
	BokehFringe        float32   `toml:"bokeh_fringe"`
	PentagonBokeh      bool      `toml:"pentagon_bokeh"`
	PentagonFeather    float32   `toml:"pentagon_feather"`
	UseNoise           bool      `toml:"use_noise"`
	NoiseAmount        float32   `toml:"noise_amount"`
	BlurDepth          bool      `toml:"blur_depth"`
	DepthBlurSize      float32   `toml:"depth_blur_size"`
	Vignetting         bool      `toml:"vignetting"`
	VignetteOut        float32   `toml:"vignette_out"`
	VignetteIn         float32   `toml:"vignette_in"`
	VignetteFade       float32   `toml:"vignette_fade"`
}

type DebugConfig struct {
	CSMCamera bool `toml:"csm_camera"`
	RSMCamera bool `toml:"rsm_camera"`
}

/**
 * @brief Every tunable of the demo. The zero value is not usable; start from
 * DefaultConfig or LoadConfig.
 */
type Config struct {
	App            AppConfig      `toml:"app"`
	Scene          SceneConfig    `toml:"scene"`
	Lighting       LightingConfig `toml:"lighting"`
	Shadows        ShadowConfig   `toml:"shadows"`
	RSM            RSMConfig      `toml:"rsm"`
	SSAO           SSAOConfig     `toml:"ssao"`
	PostProcessing bool           `toml:"post_processing"`
	HDR            HDRConfig      `toml:"hdr"`
	Bloom          BloomConfig    `toml:"bloom"`
	FXAA           FXAAConfig     `toml:"fxaa"`
	DoF            DoFConfig      `toml:"dof"`
	Debug          DebugConfig    `toml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:      "GITechDemo",
			Width:     1280,
			Height:    720,
			PosX:      100,
			PosY:      100,
			LogLevel:  "info",
			AssetsDir: "assets",
			HotReload: true,
		},
		Scene: SceneConfig{
			Model:          "models/sponza/sponza.obj",
			SkyTexture:     "textures/sky",
			ZNear:          1,
			ZFar:           5000,
			CameraPosition: math.NewVec3(-840, -600, -195),
			CameraRotation: [3]math.Vec3{
				{X: -0.440301329, Y: 0.00776965916, Z: 0.897806108},
				{X: -0.142924204, Y: 0.986597657, Z: -0.0786283761},
				{X: -0.886387110, Y: -0.162937075, Z: -0.433295786},
			},
			MoveSpeed:      5,
			FastMultiplier: 5,
			SlowMultiplier: 0.1,
			NoiseSeed:      1,
			AnimateLight:   true,
		},
		Lighting: LightingConfig{
			Ambient:          true,
			Directional:      true,
			Indirect:         true,
			AmbientOcclusion: true,
			AmbientFactor:    0.1,
			DiffuseFactor:    15,
			SpecFactor:       75,
			SunRadius:        1000,
			SunBrightness:    500,
			InitialDirection: math.NewVec3(0, -1, 0),
		},
		Shadows: ShadowConfig{
			DepthBias:        0.01,
			MapSize:          4096,
			PCFKernelSize:    16,
			NumCascades:      4,
			SplitFactor:      0.7,
			MaxViewDepth:     3000,
			CascadeBlendSize: 25,
		},
		RSM: RSMConfig{
			Size:           512,
			NumPasses:      8,
			SamplesPerPass: 16,
			Intensity:      150,
			KernelScale:    0.015,
			QuarterRes:     true,
		},
		SSAO: SSAOConfig{
			SampleRadius: 10,
			Intensity:    5,
			Scale:        0.05,
			Bias:         0.25,
			BlurKernel:   []int32{0, 1, 2},
		},
		PostProcessing: true,
		HDR: HDRConfig{
			ToneMapping:      true,
			ExposureBias:     0.1,
			AvgLumaClamp:     math.NewVec2(0.00001, 0.25),
			ShoulderStrength: 0.15,
			LinearStrength:   0.5,
			LinearAngle:      0.07,
			ToeStrength:      0.75,
			ToeNumerator:     0.02,
			ToeDenominator:   0.25,
			LinearWhite:      11.2,
			LumaAdaptSpeed:   1,
		},
		Bloom: BloomConfig{
			Enabled:             true,
			BrightnessThreshold: 1,
			Strength:            0.6,
			Power:               1,
			BlurKernel:          []int32{0, 1, 2, 2, 3},
		},
		FXAA: FXAAConfig{
			Enabled:          true,
			Subpix:           0.75,
			EdgeThreshold:    0.166,
			EdgeThresholdMin: 0.0833,
		},
		DoF: DoFConfig{
			Enabled:            true,
			FocalDepth:         100,
			FocalLength:        75,
			FStop:              3.5,
			CoC:                0.02,
			NearStart:          1,
			NearFalloff:        2,
			FarStart:           1,
			FarFalloff:         3,
			Autofocus:          true,
			FocusPoint:         math.NewVec2(0.5, 0.5),
			MaxBlur:            1,
			HighlightThreshold: 1,
			HighlightGain:      10,
			BokehBias:          0.75,
			BokehFringe:        2.5,
			PentagonFeather:    0.4,
			NoiseAmount:        0.0001,
			DepthBlurSize:      0.001,
			Vignetting:         true,
			VignetteOut:        1,
			VignetteIn:         0,
			VignetteFade:       22,
		},
	}
}

// LoadConfig overlays the TOML file at path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewResourceLoadError(path, core.LoadStageOpen, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, core.NewResourceLoadError(path, core.LoadStageDecode, err)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.App.Width == 0 || c.App.Height == 0 {
		errs = append(errs, fmt.Errorf("app: window size must be positive, got %dx%d", c.App.Width, c.App.Height))
	}
	if c.Scene.ZNear <= 0 || c.Scene.ZFar <= c.Scene.ZNear {
		errs = append(errs, fmt.Errorf("scene: invalid clip range [%g, %g]", c.Scene.ZNear, c.Scene.ZFar))
	}
	if c.Shadows.NumCascades < 1 || c.Shadows.NumCascades > MAX_NUM_CASCADES {
		errs = append(errs, fmt.Errorf("shadows: num_cascades must be in [1, %d], got %d", MAX_NUM_CASCADES, c.Shadows.NumCascades))
	}
	if c.Shadows.MapSize == 0 || c.Shadows.PCFKernelSize <= 0 {
		errs = append(errs, errors.New("shadows: map_size and pcf_kernel_size must be positive"))
	}
	if c.Shadows.SplitFactor < 0 || c.Shadows.SplitFactor > 1 {
		errs = append(errs, fmt.Errorf("shadows: split_factor must be in [0, 1], got %g", c.Shadows.SplitFactor))
	}
	if c.RSM.Size == 0 || c.RSM.NumPasses <= 0 || c.RSM.SamplesPerPass <= 0 {
		errs = append(errs, errors.New("rsm: size, num_passes and samples_per_pass must be positive"))
	}
	if len(c.SSAO.BlurKernel) == 0 || len(c.Bloom.BlurKernel) == 0 {
		errs = append(errs, errors.New("ssao/bloom: blur kernels must not be empty"))
	}
	if c.HDR.LumaAdaptSpeed <= 0 {
		errs = append(errs, fmt.Errorf("hdr: luma_adapt_speed must be positive, got %g", c.HDR.LumaAdaptSpeed))
	}
	return errors.Join(errs...)
}

// RSMKernelSize is the total number of RSM samples over all passes.
func (c *Config) RSMKernelSize() int {
	return c.RSM.NumPasses * c.RSM.SamplesPerPass
}
