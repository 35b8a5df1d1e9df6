package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "vc1",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileVC1Simple,
			vacontract.ProfileVC1Main,
			vacontract.ProfileVC1Advanced,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecVC1 },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeBitPlane: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["bit_plane"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["slice_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
