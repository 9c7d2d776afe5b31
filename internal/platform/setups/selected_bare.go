//go:build pendant_bare

package setups

var Selected = PicoBare
