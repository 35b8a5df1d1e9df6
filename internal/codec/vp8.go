// VP8's slice-data buffer may carry a leading unalignment offset (the
// client pads slice data to a macroblock-row boundary); appendSliceData
// subtracts ClientBuffer.UnalignmentOffset from the recorded slice offset
// so the vendor decoder sees the true start of compressed data.
package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name:              "vp8",
		SupportedProfiles: []vacontract.Profile{vacontract.ProfileVP8Version0_3},
		ComputeCudaCodec:  func(vacontract.Profile) CudaCodecID { return CudaCodecVP8 },
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
