// Package timeline arranges media objects into priority-ordered layers.
//
// A Composition holds sources in one or more layers and stacks effect and
// transition tiers above them. Every object carries a priority that decides
// its rendering precedence; the composition owns those priorities and pushes
// them to each object's render-graph node. Editing operations keep the
// start/duration relationships between sources consistent (ripple insert,
// collapse on removal, push on move) and maintain a condensed view, the
// start-ordered merge of transitions and sources used for presentation.
//
// Two compositions can be linked so that edits are mirrored onto the brother
// of each object, which is how a video track and its audio track stay in step.
// A Timeline bundles such a pair.
//
// Errors are returned as *EditError and are always raised before anything is
// mutated.
package timeline
