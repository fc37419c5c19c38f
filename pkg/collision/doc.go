// Package collision holds the low-level analytic routines shared by every
// volume: quadratic roots, ray casts against spheres, linear-radius cones,
// cylinders, capsules, triangles and plane-bounded polytopes, closest points on
// segments and triangles, segment distances, and GJK distance / conservative
// advancement over support mappings.
//
// Ray routines report the first surface crossing where the ray enters the
// shape. A ray whose origin is already inside reports no entering hit unless
// it leaves and re-enters; callers test containment first.
package collision
