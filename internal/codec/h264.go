// H.264 handlers, including the SVC and MVC profile variants (Multiview
// High and Stereo High share the base H.264 bitstream shape, differing
// only in how many views/layers the client submits slice data for, which
// this table does not need to distinguish since each slice is still one
// appended NAL payload).
//
// Slice accumulation grounded on the NAL/slice buffer handling shape in
// other_examples/99afe196_bugVanisher-streamer__media-codec-h264parser-parser.go.go;
// SPS field layout referenced from
// other_examples/241b888b_ausocean-av__codec-h264-h264dec-sps.go.go.
package codec

import "github.com/nvcuvid/vaapi-driver/internal/vacontract"

func init() {
	Register(&Descriptor{
		Name: "h264",
		SupportedProfiles: []vacontract.Profile{
			vacontract.ProfileH264ConstrainedBaseline,
			vacontract.ProfileH264Main,
			vacontract.ProfileH264High,
			vacontract.ProfileH264MultiviewHigh,
			vacontract.ProfileH264StereoHigh,
		},
		ComputeCudaCodec: func(vacontract.Profile) CudaCodecID { return CudaCodecH264 },
		Handlers: map[vacontract.BufferType]Handler{
			vacontract.BufferTypePictureParameter: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["picture_parameter"] = buf.Data
			},
			vacontract.BufferTypeIQMatrix: func(rc *RenderContext, buf ClientBuffer) {
				rc.Params.Fields["iq_matrix"] = buf.Data
			},
			vacontract.BufferTypeSliceParameter: func(rc *RenderContext, buf ClientBuffer) {
				// Multiple slice-parameter buffers may arrive per picture
				// (one per slice); accumulate rather than overwrite.
				existing, _ := rc.Params.Fields["slice_parameters"].([][]byte)
				rc.Params.Fields["slice_parameters"] = append(existing, buf.Data)
			},
			vacontract.BufferTypeSliceData: appendSliceData,
		},
	})
}
