// Package tonemap provides luma-based tone remapping for RGBA8 raster images.
//
// Transforms are pure: each one consumes a PixelBuffer and returns a new one. Grayscale
// derives intensity under a LumaPolicy, Reflect quantizes intensity against a sorted set
// of anchors (Average or Partial segmentation), and Denoise replaces isolated pixels by a
// majority vote over their 8-neighbourhood. The anchors used for a reflection can be
// embedded into a PNG tEXt chunk and read back later.
package tonemap
