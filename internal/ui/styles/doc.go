// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the opsdesk widget.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - assistant replies and selections
  - Cyan - mentions, chips and the input prompt
  - Amber - interrupted replies
  - Rose - failed replies

Status helpers (RenderSuccess, RenderError, ...) pair every color with an
ASCII indicator so states stay readable without color.

# Theme System (theme.go)

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// Hide descriptions in the suggestion list
	}
*/
package styles
