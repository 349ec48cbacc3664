// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package featuresync keeps a client-side copy of the feature list in step with
the API.

A Controller owns the list, the set of upvotes awaiting the server, the sort
mode and the last error. One goroutine holds that state; Trigger, Upvote,
ToggleSort and DismissError post work to it and return immediately.

List requests supersede each other: a new one cancels the previous request's
context and bumps a generation counter, and any response from an older
generation is dropped. Upvotes are applied locally first and reverted if the
server rejects them.

Background revalidation runs on a ticker (DefaultInterval). The UI adds focus,
resume and manual triggers, and a Signal carries "feature created" from the
new-feature form.
*/
package featuresync
