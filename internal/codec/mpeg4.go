package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "mpeg4",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileMPEG4Simple,
			vacontract.ProfileMPEG4AdvancedSimple,
			vacontract.ProfileMPEG4Main,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecMPEG4 },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeIQMatrix: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["iq_matrix"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["slice_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
