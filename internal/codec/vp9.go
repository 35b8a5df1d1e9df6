package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "vp9",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileVP9Profile0,
			vacontract.ProfileVP9Profile1,
			vacontract.ProfileVP9Profile2,
			vacontract.ProfileVP9Profile3,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecVP9 },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeProbabilityData: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["probability_data"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["slice_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
