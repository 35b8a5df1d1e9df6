package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "hevc",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileHEVCMain,
			vacontract.ProfileHEVCMain10,
			vacontract.ProfileHEVCMain12,
			vacontract.ProfileHEVCMain444,
			vacontract.ProfileHEVCMain444_10,
			vacontract.ProfileHEVCMain444_12,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecHEVC },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeIQMatrix: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["iq_matrix"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				existing, _ := rc.Params.Fields["slice_parameters"].([][]byte)
				rc.Params.Fields["slice_parameters"] = append(existing, buf.Data)
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
