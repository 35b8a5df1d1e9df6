package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "mpeg2",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileMPEG2Simple,
			vacontract.ProfileMPEG2Main,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecMPEG2 },
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
