// Package pixel has the packed color models and images of OLED and LCD controllers.
//
// Every model converts from any [color.Color] and every image implements [draw.Image], so
// the standard drawing code renders straight into controller native buffers. The Wrap
// constructors lay an image over an existing byte slice, such as a display draw buffer.
package pixel
