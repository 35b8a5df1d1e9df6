package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name:              "jpeg",
		SupportedProfiles: []vacontract.Profile{vacontract.ProfileJPEGBaseline},
		ComputeCudaCodec:  func(vacontract.Profile) CudaCodecID { return CudaCodecJPEG },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeQMatrix: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["q_matrix"] = buf.Data
			},
			vacontract.BufferTypeHuffmanTable: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["huffman_table"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["slice_parameter"] = buf.Data
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
