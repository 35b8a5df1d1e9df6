package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "av1",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileAV1Profile0,
			vacontract.ProfileAV1Profile1,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecAV1 },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["slice_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
